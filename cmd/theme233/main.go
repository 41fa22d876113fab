// theme233 命令行工具：查看、校验与监听主题资源
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
