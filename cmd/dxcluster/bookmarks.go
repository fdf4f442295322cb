package main

import (
	"fmt"
	"strconv"

	"dxcluster/internal/models"
	"dxcluster/internal/ui"

	"github.com/spf13/cobra"
)

func newBookmarksCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bookmarks",
		Short: "List and add saved connection profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newBookmarksListCmd(root))
	cmd.AddCommand(newBookmarksAddCmd(root))
	return cmd
}

func newBookmarksListCmd(root *rootOptions) *cobra.Command {
	var keysOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved bookmarks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := loadRuntime(root)
			if err != nil {
				return err
			}
			defer rt.Close()

			keys, found, err := rt.store.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !found || len(keys) == 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "no bookmarks in %s\n", rt.store.Path())
				return nil
			}

			if keysOnly {
				for _, k := range keys {
					fmt.Fprintln(out, k)
				}
				return nil
			}

			rows := make([][]string, 0, len(keys))
			for _, k := range keys {
				p, err := rt.store.Get(k)
				if err != nil {
					rt.logger.Warn("skipping unreadable bookmark", "key", k, "error", err)
					continue
				}
				password := ""
				if p.Password != "" {
					password = "********"
				}
				rows = append(rows, []string{k, p.Host, strconv.Itoa(p.Port), p.Username, password})
			}
			fmt.Fprintln(out, ui.RenderTable([]string{"Bookmark", "Host", "Port", "Username", "Password"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&keysOnly, "keys", false, "print only the bookmark keys")
	return cmd
}

func newBookmarksAddCmd(root *rootOptions) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "add HOST [PORT]",
		Short: "Save a bookmark without connecting",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var port string
			if len(args) > 1 {
				port = args[1]
			}
			p, err := models.NewProfile(args[0], port, username, password)
			if err != nil {
				return err
			}

			rt, err := loadRuntime(root)
			if err != nil {
				return err
			}
			defer rt.Close()

			key, err := rt.store.Put(p)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "login name, usually your callsign")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password sent after the login (stored in clear text)")
	return cmd
}
