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
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/blacktop/zigbuild/internal/colors"
	"github.com/blacktop/zigbuild/internal/commands/cargo"
	"github.com/blacktop/zigbuild/pkg/wrapper"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().StringSliceP("target", "t", nil, "Target triple, optionally with a .<glibc version> suffix (repeatable)")
	envCmd.Flags().Bool("enable-zig-ar", false, "Use `zig ar` as the archiver")
	viper.BindPFlag("env.target", envCmd.Flags().Lookup("target"))
	viper.BindPFlag("enable-zig-ar", envCmd.Flags().Lookup("enable-zig-ar"))
}

// envCmd represents the env command
var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Print the environment cargo is run with",
	Example: heredoc.Doc(`
		# Print the variables for a glibc 2.17 build
		❯ cargo-zigbuild env --target x86_64-unknown-linux-gnu.2.17
		# Load them into the current shell
		❯ eval "$(cargo-zigbuild env --target aarch64-apple-darwin)"`),
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, cacheDir, err := loadConfig()
		if err != nil {
			return err
		}

		opts := &cargo.Options{
			Targets:     viper.GetStringSlice("env.target"),
			EnableZigAr: conf.EnableZigAr,
			Env:         os.Environ(),
		}
		if len(opts.Targets) == 0 {
			if t := os.Getenv("CARGO_BUILD_TARGET"); t != "" {
				opts.Targets = []string{t}
			}
		}

		vars, err := cargo.NewApplier(conf.Toolchain(), conf.Exe, cacheDir, conf.SDKRoot).Environment(opts)
		if err != nil {
			return err
		}

		if len(opts.Targets) > 0 {
			fmt.Println(colors.Faint().Sprintf("# %s", strings.Join(opts.Targets, ", ")))
		}
		for _, v := range vars {
			fmt.Println(exportLine(v))
		}
		return nil
	},
}

// exportLine renders v as a plain `export` statement so the output stays eval-able
func exportLine(v cargo.Var) string {
	return fmt.Sprintf("export %s=%s", v.Key, wrapper.ShellQuote(v.Value))
}
