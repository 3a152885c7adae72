package target

import (
	"slices"

	"github.com/hashicorp/go-version"
)

type cpuRule struct {
	os   []string // rust os
	arch string   // rust arch
	env  []string // empty matches any
	zig  version.Constraints
	cpu  string
}

var appleBaseline = mustConstraint(">= 0.10")

var cpuRules = []cpuRule{
	{os: []string{"linux"}, arch: "arm", env: []string{"gnueabi", "musleabi"}, cpu: "generic+v6+strict_align"},
	{os: []string{"linux"}, arch: "arm", env: []string{"gnueabihf", "musleabihf"}, cpu: "generic+v6+strict_align+vfp2-d32"},
	{os: []string{"linux"}, arch: "armv5te", cpu: "generic+soft_float+strict_align"},
	{os: []string{"linux"}, arch: "armv7", cpu: "generic+v7a+vfp3-d32+thumb2-neon"},
	{os: []string{"linux"}, arch: "thumbv7neon", cpu: "generic+v7a+vfp3-d32+thumb2+neon"},
	{os: []string{"linux"}, arch: "i586", cpu: "pentium"},
	{os: []string{"linux", "windows"}, arch: "i686", cpu: "pentiumpro"},
	{os: []string{"linux"}, arch: "riscv64gc", cpu: "generic_rv64+m+a+f+d+c"},
	{os: []string{"linux"}, arch: "riscv32gc", cpu: "generic_rv32+m+a+f+d+c"},
	{os: []string{"darwin", "macos"}, arch: "aarch64", zig: appleBaseline, cpu: "apple_m1"},
	{os: []string{"ios"}, arch: "aarch64", zig: appleBaseline, cpu: "apple_a7"},
	{os: []string{"darwin", "macos", "ios"}, arch: "x86_64", zig: appleBaseline, cpu: "penryn"},
}

func baselineCPU(s *Spec, zig *version.Version) string {
	for _, r := range cpuRules {
		if r.arch != s.Arch || !slices.Contains(r.os, s.OS) {
			continue
		}
		if len(r.env) > 0 && !slices.Contains(r.env, s.Env) {
			continue
		}
		if r.zig != nil && zig != nil && !r.zig.Check(zig.Core()) {
			continue
		}
		return r.cpu
	}
	return ""
}

func mustConstraint(c string) version.Constraints {
	cs, err := version.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return cs
}
