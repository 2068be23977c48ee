// Copyright (c) 2026 Dokusha. All rights reserved.
// Author: duc.phamanh.vn@gmail.com

// Package query parses loosely-typed URL query parameter values.
package query

import (
	"sort"
	"strings"
)

// StringSlice parses a single comma-separated query string
// into a trimmed slice of strings.
func StringSlice(val string) []string {
	if val == "" {
		return nil
	}
	var res []string
	for _, v := range strings.Split(val, ",") {
		clean := strings.TrimSpace(v)
		if clean != "" {
			res = append(res, clean)
		}
	}
	return res
}

// SortedUnique returns a sorted copy of the input with duplicates removed.
//
// Used wherever a parameter list participates in a deterministic cache key:
// the same set of values must produce the same key regardless of input order.
func SortedUnique(vals []string) []string {
	if len(vals) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(vals))
	res := make([]string, 0, len(vals))
	for _, v := range vals {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		res = append(res, v)
	}

	sort.Strings(res)
	return res
}
