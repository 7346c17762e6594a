package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/lawbridge/lawbridge/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Manage configuration",
		Annotations: map[string]string{standalone: "true"},
	}
	cmd.AddCommand(newConfigGenerateCmd())
	cmd.AddCommand(newConfigUpdateCmd())
	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

func newConfigGenerateCmd() *cobra.Command {
	var out string
	var overwrite bool
	var update bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a default config.toml",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = config.DefaultConfigPath()
			}
			if overwrite && update {
				return fmt.Errorf("choose either --overwrite or --update")
			}
			return writeConfigFile(cmd, out, overwrite, update)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output path for config.toml")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "overwrite existing config (creates a backup)")
	cmd.Flags().BoolVar(&update, "update", false, "merge defaults into existing config (creates a backup)")
	return cmd
}

func newConfigUpdateCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Merge new defaults into config.toml and comment out removed keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = config.DefaultConfigPath()
			}
			if !fileExists(out) {
				return fmt.Errorf("no config at %s; run `config generate` first", out)
			}
			return writeConfigFile(cmd, out, false, true)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "path of config.toml")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration and where it came from",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := getConfig(cmd)
			w := cmd.OutOrStdout()
			src := v.ConfigFileUsed()
			if src == "" {
				src = "(defaults and environment only)"
			}
			_, _ = fmt.Fprintf(w, "# config file: %s\n", src)
			keys := make([]string, 0)
			for _, o := range config.GetConfigOptions() {
				keys = append(keys, o.Key)
			}
			sort.Strings(keys)
			for _, k := range keys {
				_, _ = fmt.Fprintf(w, "%s = %v\n", k, v.Get(k))
			}
			if err := config.CheckConfigValidity(v); err != nil {
				_, _ = fmt.Fprintf(w, "\n# %v\n", err)
			}
			return nil
		},
	}
	return cmd
}

// writeConfigFile renders a fresh config or merges defaults into an existing
// one. Any existing file is backed up before it is replaced.
func writeConfigFile(cmd *cobra.Command, out string, overwrite, update bool) error {
	w := cmd.OutOrStdout()
	current, err := os.ReadFile(out)
	exists := err == nil
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if exists && !overwrite && !update {
		return fmt.Errorf("config already exists at %s; pass --overwrite to replace it or --update to merge new defaults", out)
	}

	content := config.RenderDefaultTOML()
	if exists && update {
		merged, changed := config.UpdateTOML(string(current))
		if !changed {
			_, _ = fmt.Fprintf(w, "Config already up to date: %s\n", out)
			return nil
		}
		content = merged
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o700); err != nil {
		return err
	}
	if exists {
		backup := backupPath(out, time.Now())
		if err := os.WriteFile(backup, current, 0o600); err != nil {
			return fmt.Errorf("backup config: %w", err)
		}
		defer func() { _, _ = fmt.Fprintf(w, "Backup: %s\n", backup) }()
	}
	if err := replaceFile(out, []byte(content)); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "Wrote %s\n", out)
	return nil
}

// backupPath prefers path.bak and falls back to a timestamped name.
func backupPath(path string, now time.Time) string {
	if !fileExists(path + ".bak") {
		return path + ".bak"
	}
	return path + ".bak-" + now.Format("20060102-150405")
}

// replaceFile writes through a temp file in the same directory and renames it
// over path.
func replaceFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
