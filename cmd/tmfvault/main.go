// Package main 启动应用程序
package main

import "github.com/yeisme/tmfvault/pkg/cmd"

//	@title			TMFVault API
//	@version		1.0
//	@description	TMFVault 是一个临床试验主文件（TMF）文档管理服务，提供用户认证、四级分类结构管理、结构定义导入和文档上传存储等功能。

//	@license.name	MIT
//	@license.url	https://opensource.org/license/mit/

func main() {
	if err := cmd.Execute(); err != nil {
		panic(err)
	}
}
