// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command nrbfdump decodes an MS-NRBF byte stream and prints the
// resulting value tree as JSON.
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	nrbf "github.com/msnrbf/nrbf"
)

var (
	wantBase64  bool
	wantPretty  bool
	resolveMode string
	skipCycles  bool
)

func prettyPrint(buf []byte) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf, "", "\t"); err != nil {
		log.Println("JSON indent error: ", err)
		return string(buf)
	}
	return pretty.String()
}

func isDirectory(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fi.IsDir()
}

func loadInput(filename string) ([]byte, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if wantBase64 {
		decoded := make([]byte, base64.StdEncoding.DecodedLen(len(data)))
		n, err := base64.StdEncoding.Decode(decoded, bytes.TrimSpace(data))
		if err != nil {
			return nil, fmt.Errorf("base64 decode: %w", err)
		}
		return decoded[:n], nil
	}
	return data, nil
}

func parseOptions() (*nrbf.Options, error) {
	opts := &nrbf.Options{SkipCycles: skipCycles}
	switch resolveMode {
	case "", "inplace":
		opts.ResolveMode = nrbf.ResolveInPlace
	case "expand":
		opts.ResolveMode = nrbf.ResolveExpand
	default:
		return nil, fmt.Errorf("unknown --resolve mode %q (want inplace or expand)", resolveMode)
	}
	return opts, nil
}

func dumpFile(filename string) int {
	log.Printf("Processing filename %s", filename)

	data, err := loadInput(filename)
	if err != nil {
		log.Printf("Error while reading file: %s, reason: %s", filename, err)
		return 1
	}

	opts, err := parseOptions()
	if err != nil {
		log.Printf("Error: %s", err)
		return 1
	}

	p := nrbf.NewBytes(data, opts)
	defer p.Close()

	value, err := p.Parse()
	if err != nil {
		log.Printf("Error while parsing file: %s, reason: %s", filename, err)
		return 1
	}

	out, err := json.Marshal(value)
	if err != nil {
		log.Printf("Error while marshaling result: %s", err)
		return 1
	}

	if wantPretty {
		fmt.Println(prettyPrint(out))
	} else {
		fmt.Println(string(out))
	}
	return 0
}

func dump(cmd *cobra.Command, args []string) error {
	exitCode := 0
	for _, arg := range args {
		if !isDirectory(arg) {
			if c := dumpFile(arg); c != 0 {
				exitCode = c
			}
			continue
		}
		walkErr := filepath.Walk(arg, func(path string, fi os.FileInfo, err error) error {
			if err != nil || fi.IsDir() {
				return err
			}
			if c := dumpFile(path); c != 0 {
				exitCode = c
			}
			return nil
		})
		if walkErr != nil {
			return walkErr
		}
	}
	if exitCode != 0 {
		os.Exit(exitCode)
	}
	return nil
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   "nrbfdump",
		Short: "A Microsoft .NET Remoting Binary Format (MS-NRBF) decoder",
		Long:  "Decodes MS-NRBF byte streams into a self-describing JSON value tree, for forensic inspection of opaque .NET payloads.",
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("nrbfdump version 0.1.0")
		},
	}

	var dumpCmd = &cobra.Command{
		Use:   "dump [file or directory]...",
		Short: "Decode one or more MS-NRBF streams",
		Args:  cobra.MinimumNArgs(1),
		RunE:  dump,
	}
	dumpCmd.Flags().BoolVar(&wantBase64, "base64", false, "base64-decode the input before parsing")
	dumpCmd.Flags().BoolVar(&wantPretty, "pretty", false, "pretty-print the resulting JSON")
	dumpCmd.Flags().StringVar(&resolveMode, "resolve", "inplace", "reference resolution mode: inplace or expand")
	dumpCmd.Flags().BoolVar(&skipCycles, "skip-cycles", false, "in expand mode, replace a detected cycle with a stub instead of failing")

	rootCmd.AddCommand(versionCmd, dumpCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
