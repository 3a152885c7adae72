/*
Copyright © 2018-2023 blacktop

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package zig

import (
	"fmt"

	"github.com/blacktop/zigbuild/internal/config"
	zigcmd "github.com/blacktop/zigbuild/internal/commands/zig"
	"github.com/spf13/cobra"
)

func init() {
	for _, tool := range zigcmd.Tools {
		ZigCmd.AddCommand(newToolCmd(tool))
	}
}

// ZigCmd represents the zig command
var ZigCmd = &cobra.Command{
	Use:    "zig",
	Short:  "Run a zig toolchain command",
	Hidden: true,
	Args:   cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func newToolCmd(tool string) *cobra.Command {
	return &cobra.Command{
		Use:                fmt.Sprintf("%s [ARGS...]", tool),
		Short:              fmt.Sprintf("Run `zig %s`", tool),
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return zigcmd.Execute(conf.Toolchain(), tool, args)
		},
	}
}
