// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transport

import (
	"fmt"
	"io"
	"strings"
)

// knownPrefixes lists the drop directories the feed has historically
// appeared under, in probe order. Both casings occur in the wild, and
// some accounts chroot the session so relative variants are included.
var knownPrefixes = []string{
	"/import/bi",
	"/Import/bi",
	"/import",
	"/Import",
	"/bi",
	"import/bi",
	"Import/bi",
	"import",
	"Import",
	"bi",
	"/",
	"",
}

// candidatePaths returns the known remote locations for name, in probe order.
func candidatePaths(name string) []string {
	paths := make([]string, 0, len(knownPrefixes))
	for _, prefix := range knownPrefixes {
		switch prefix {
		case "":
			paths = append(paths, name)
		case "/":
			paths = append(paths, "/"+name)
		default:
			paths = append(paths, prefix+"/"+name)
		}
	}
	return paths
}

// Locate finds the feed file on the drop: first by probing the known
// paths, then by a breadth-first directory scan bounded to maxDepth
// levels. The filename match is case-insensitive. Progress is written
// to w.
func (c *Client) Locate(name string, maxDepth int, w io.Writer) (string, error) {
	for _, p := range candidatePaths(name) {
		info, err := c.sftp.Stat(p)
		if err != nil || info.IsDir() {
			continue
		}
		fmt.Fprintf(w, "found %s (%d bytes)\n", p, info.Size())
		return p, nil
	}

	if maxDepth <= 0 {
		maxDepth = 3
	}
	fmt.Fprintln(w, "known paths failed, scanning drop...")

	dirs := []string{"."}
	for depth := 0; depth < maxDepth; depth++ {
		var next []string
		for _, dir := range dirs {
			entries, err := c.sftp.ReadDir(dir)
			if err != nil {
				fmt.Fprintf(w, "warning: cannot list %s: %v\n", dir, err)
				continue
			}
			for _, entry := range entries {
				child := entry.Name()
				if dir != "." {
					child = dir + "/" + entry.Name()
				}
				if entry.IsDir() {
					next = append(next, child)
					continue
				}
				if strings.EqualFold(entry.Name(), name) {
					fmt.Fprintf(w, "discovered %s (%d bytes)\n", child, entry.Size())
					return child, nil
				}
			}
		}
		dirs = next
	}

	return "", fmt.Errorf("could not find %s anywhere on the drop", name)
}
