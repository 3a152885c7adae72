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
	"github.com/MakeNowJust/heredoc/v2"
	"github.com/blacktop/zigbuild/internal/commands/macho"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(installNameToolCmd)
}

// installNameToolCmd represents the install_name_tool command
var installNameToolCmd = &cobra.Command{
	Use:   "install_name_tool [OPTIONS] <MACHO>",
	Short: "Change dynamic shared library install names and rpaths",
	Example: heredoc.Doc(`
		# Add an LC_RPATH
		❯ cargo-zigbuild install_name_tool -add_rpath @loader_path/../lib target/release/libfoo.dylib
		# Rewrite a dependency and the dylib ID in one pass
		❯ cargo-zigbuild install_name_tool -id @rpath/libfoo.dylib -change /usr/local/lib/libbar.dylib @rpath/libbar.dylib libfoo.dylib`),
	DisableFlagParsing: true,
	SilenceUsage:       true,
	SilenceErrors:      true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return macho.InstallNameTool(args)
	},
}
