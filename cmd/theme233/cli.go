package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/neko233-com/theme233-go/pkg/theme233"
	"github.com/neko233-com/theme233-go/pkg/theme233/converters"
	"github.com/neko233-com/theme233-go/pkg/theme233/store"
	"github.com/neko233-com/theme233-go/pkg/theme233/watch"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
)

// DirEnv 未指定 --dir 时使用的环境变量
const DirEnv = "THEME233_DIR"

type cli struct {
	files     []string
	dir       string
	verbosity int
	prefix    string
	metrics   bool

	stderr io.Writer
}

func newRootCommand() *cobra.Command {
	c := &cli{stderr: os.Stderr}
	root := &cobra.Command{
		Use:          "theme233",
		Short:        "主题资源工具",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			theme233.SetLogger(c.logger())
			return converters.Install()
		},
	}
	root.PersistentFlags().StringSliceVarP(&c.files, "file", "f", nil, "资源文件，可重复指定，按顺序合并")
	root.PersistentFlags().StringVar(&c.dir, "dir", os.Getenv(DirEnv), "资源目录，默认读取环境变量 "+DirEnv)
	root.PersistentFlags().IntVarP(&c.verbosity, "verbose", "v", 0, "日志详细程度")

	root.AddCommand(c.getCommand(), c.keysCommand(), c.checkCommand(), c.watchCommand())
	return root
}

func (c *cli) logger() logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintln(c.stderr, prefix, args)
		} else {
			fmt.Fprintln(c.stderr, args)
		}
	}, funcr.Options{Verbosity: c.verbosity})
}

// sources 目录中的文件在前，--file 指定的文件在后
func (c *cli) sources() ([]store.Source, error) {
	var sources []store.Source
	if c.dir != "" {
		dirSources, err := store.Dir(c.dir)
		if err != nil {
			return nil, err
		}
		sources = append(sources, dirSources...)
	}
	for _, f := range c.files {
		src, err := store.File(f)
		if err != nil {
			return nil, err
		}
		sources = append(sources, src)
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("没有资源文件，请使用 --file 或 --dir 指定")
	}
	return sources, nil
}

func (c *cli) paths() ([]string, error) {
	sources, err := c.sources()
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(sources))
	for _, s := range sources {
		paths = append(paths, s.Name())
	}
	return paths, nil
}

func (c *cli) injector() (*theme233.Injector, error) {
	sources, err := c.sources()
	if err != nil {
		return nil, err
	}
	inj := theme233.Get("theme233-cli")
	if err := inj.Reload(sources...); err != nil {
		return nil, err
	}
	return inj, nil
}

func (c *cli) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY...",
		Short: "输出展开引用后的资源值",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inj, err := c.injector()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, key := range args {
				v, found, err := inj.GetValue(key)
				if err != nil {
					return err
				}
				if !found {
					return &theme233.LookupError{Attempted: []string{key}}
				}
				if len(args) == 1 {
					fmt.Fprintln(out, v)
				} else {
					fmt.Fprintf(out, "%s=%s\n", key, v)
				}
			}
			return nil
		},
	}
}

func (c *cli) keysCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "列出所有资源 key",
		RunE: func(cmd *cobra.Command, args []string) error {
			inj, err := c.injector()
			if err != nil {
				return err
			}
			for _, key := range inj.Keys() {
				if strings.HasPrefix(key, c.prefix) {
					fmt.Fprintln(cmd.OutOrStdout(), key)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&c.prefix, "prefix", "", "只列出以此开头的 key")
	return cmd
}

func (c *cli) checkCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "展开所有资源，报告缺失的引用与循环引用",
		RunE: func(cmd *cobra.Command, args []string) error {
			inj, err := c.injector()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var errs []error
			keys := inj.Keys()
			for _, key := range keys {
				if _, _, err := inj.GetValue(key); err != nil {
					errs = append(errs, err)
					fmt.Fprintf(out, "FAIL %s: %v\n", key, err)
				}
			}
			fmt.Fprintf(out, "%d 个资源，%d 个错误\n", len(keys), len(errs))
			if c.metrics {
				metrics.WriteOnce(theme233.Metrics(), out)
			}
			if len(errs) > 0 {
				return &theme233.AggregateError{Errs: errs}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&c.metrics, "metrics", false, "输出统计指标")
	return cmd
}

func (c *cli) watchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "监听资源文件，变化后重新加载并校验",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := c.paths()
			if err != nil {
				return err
			}
			inj, err := c.injector()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			w := watch.New(inj, paths...)
			w.Logger = c.logger().WithName("watch")
			w.OnReload = func(changed []string, err error) {
				sort.Strings(changed)
				if err != nil {
					fmt.Fprintf(out, "重载失败 %v: %v\n", changed, err)
					return
				}
				fmt.Fprintf(out, "已重载 %v，共 %d 个资源\n", changed, len(inj.Keys()))
			}
			if err := w.Start(); err != nil {
				return err
			}
			defer w.Close()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig
			return nil
		},
	}
}
