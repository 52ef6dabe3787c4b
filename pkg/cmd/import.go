package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yeisme/tmfvault/pkg/configs"
	ctxPkg "github.com/yeisme/tmfvault/pkg/context"
	"github.com/yeisme/tmfvault/pkg/internal/importer"
	"github.com/yeisme/tmfvault/pkg/internal/model"
	"github.com/yeisme/tmfvault/pkg/internal/storage"
	"github.com/yeisme/tmfvault/pkg/internal/storage/db"
	"github.com/yeisme/tmfvault/pkg/log"
)

var (
	importFile string

	importCmd = &cobra.Command{
		Use:   "import",
		Short: "import a taxonomy structure definition from a JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if importFile == "" {
				return fmt.Errorf("--file is required")
			}

			raw, err := os.ReadFile(importFile)
			if err != nil {
				return fmt.Errorf("read structure file: %w", err)
			}

			if err := configs.InitConfig(configPath); err != nil {
				return err
			}

			log.Init()

			ctx := context.Background()

			client, err := db.New(ctx, &configs.GetConfig().DB)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer func() { _ = client.Close() }()

			if err := client.AutoMigrate(model.AllModels()...); err != nil {
				return fmt.Errorf("migrate schema: %w", err)
			}

			// 离线导入只需要数据库，不建对象存储和队列连接
			ctx = ctxPkg.WithStorageManager(ctx, storage.NewManager(client, nil, nil, nil))

			result, err := importer.New(ctx).ImportJSON(ctx, raw, "cli:"+importFile)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "snapshot %s: created=%d updated=%d failed=%d\n",
				result.SnapshotVersion, result.Created, result.Updated, result.Failed)

			for _, e := range result.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s %s: %s\n", e.Level, e.Number, e.Reason)
			}

			// 失败明细已完整输出后再以非零码退出
			if result.Failed > 0 {
				return fmt.Errorf("%d node(s) failed to import", result.Failed)
			}

			return nil
		},
	}
)

// registerImportCommands 注册结构导入命令.
func registerImportCommands() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "path to the structure definition JSON")

	rootCmd.AddCommand(importCmd)
}
