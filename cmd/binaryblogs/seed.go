package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/binary-blogs/binary-blogs/internal/app/seed"
)

func newSeedCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "写入演示文章",
		Long: `写入内置的演示文章。默认只在文章数不超过阈值时写入，
--force 忽略阈值，已存在的 id 仍会跳过。`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := loadApp(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer cleanup()

			posts, err := seed.DemoPosts()
			if err != nil {
				return err
			}
			store := app.BlogStore()
			var added int
			if force {
				added, err = store.ForceSeed(cmd.Context(), posts)
			} else {
				added, err = store.InitializeStore(cmd.Context(), posts)
			}
			if err != nil {
				return err
			}
			fmt.Printf("已写入 %d 篇演示文章，当前共 %d 篇\n", added, store.Len())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "忽略阈值强制写入")
	return cmd
}
