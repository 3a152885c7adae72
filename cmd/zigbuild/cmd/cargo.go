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

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/blacktop/zigbuild/internal/commands/cargo"
	"github.com/spf13/cobra"
)

type cargoCommand struct {
	name    string
	aliases []string
	short   string
	example string
}

var cargoCommands = []cargoCommand{
	{
		name:    "build",
		aliases: []string{"zigbuild", "b"},
		short:   "Compile a package and all of its dependencies with zig as the linker",
		example: heredoc.Doc(`
			# Build for aarch64 Linux against glibc 2.17
			❯ cargo zigbuild --target aarch64-unknown-linux-gnu.2.17
			# Build for several targets at once
			❯ cargo zigbuild --release --target x86_64-unknown-linux-musl,aarch64-apple-darwin`),
	},
	{name: "check", aliases: []string{"c"}, short: "Check a package for errors with the zig toolchain environment"},
	{name: "clippy", short: "Run clippy with the zig toolchain environment"},
	{name: "doc", aliases: []string{"d"}, short: "Build documentation with the zig toolchain environment"},
	{
		name:    "run",
		aliases: []string{"r"},
		short:   "Build and run a binary with zig as the linker",
		example: heredoc.Doc(`
			# Run under an emulator configured through the target runner
			❯ cargo-zigbuild run --target aarch64-unknown-linux-gnu -- --help`),
	},
	{name: "test", aliases: []string{"t"}, short: "Build and run tests with zig as the linker"},
	{name: "rustc", short: "Compile a package passing extra options to rustc, with zig as the linker"},
}

func init() {
	for _, c := range cargoCommands {
		rootCmd.AddCommand(newCargoCmd(c))
	}
}

func newCargoCmd(c cargoCommand) *cobra.Command {
	return &cobra.Command{
		Use:                fmt.Sprintf("%s [CARGO ARGS...]", c.name),
		Aliases:            c.aliases,
		Short:              c.short,
		Example:            c.example,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, cacheDir, err := loadConfig()
			if err != nil {
				return err
			}
			return cargo.Run(conf, conf.Toolchain(), cacheDir, c.name, args)
		},
	}
}
