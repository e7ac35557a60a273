// Copyright (c) 2024, iptecharch.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// yang-compiler parses and compiles the YANG modules named on the command
// line (or found in the directories named with -dir), reporting schema
// errors the way a build would: one structured line per failure.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/iptecharch/yang-compiler/compile"
	"github.com/iptecharch/yang-compiler/schema"
)

func main() {
	var dirs, features string
	var verbose bool
	flag.StringVar(&dirs, "dir", "", "comma-separated directories to search for modules")
	flag.StringVar(&features, "features", "", "comma-separated features to enable (module:feature)")
	flag.BoolVar(&verbose, "v", false, "debug logging")
	flag.Parse()

	logger := log.New()
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	locators := []compile.YangLocator{
		compile.YangFiles(flag.Args()...),
	}
	if dirs != "" {
		locators = append(locators,
			compile.YangDirs(strings.Split(dirs, ",")...))
	}

	var checker compile.FeaturesChecker
	if features != "" {
		checker = compile.FeaturesFromNames(true, strings.Split(features, ",")...)
	}

	ms, err := compile.CompileDir(nil,
		&compile.Config{
			Features: checker,
			Logger:   log.NewEntry(logger),
		},
		compile.YangLocations(locators...))
	if err != nil {
		logger.Error(err)
		os.Exit(1)
	}

	for name, mod := range ms.Modules() {
		fmt.Printf("%s: %d top-level nodes, %d rpcs, %d notifications\n",
			name, len(mod.Children()), len(mod.Rpcs()),
			len(mod.Notifications()))
		for _, path := range paths(mod, "") {
			fmt.Println("  " + path)
		}
	}
}

func paths(n schema.Node, prefix string) []string {
	var out []string
	for _, ch := range n.Children() {
		p := prefix + "/" + ch.Name()
		if len(ch.Children()) == 0 {
			out = append(out, p)
			continue
		}
		out = append(out, paths(ch, p)...)
	}
	return out
}
