// Package version compares the loosely formatted version strings that
// compilers report ("5", "6.0", "9.1.0", "10.0.1.2", "8.0-beta").
package version

/* verrevcmp below follows the GNU version comparison.

   Copyright (C) 1995 Ian Jackson <iwj10@cus.cam.ac.uk>
   Copyright (C) 2001 Anthony Towns <aj@azure.humbug.org.au>
   Copyright (C) 2008-2025 Free Software Foundation, Inc.

   This file is free software: you can redistribute it and/or modify
   it under the terms of the GNU Lesser General Public License as
   published by the Free Software Foundation, either version 3 of the
   License, or (at your option) any later version.

   This file is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
   GNU Lesser General Public License for more details.

   You should have received a copy of the GNU Lesser General Public License
   along with this program.  If not, see <https://www.gnu.org/licenses/>.  */

import (
	"strings"

	"golang.org/x/mod/semver"
)

// Compare returns -1, 0 or 1 as a orders before, equal to, or after b.
//
// Versions that read as (possibly shortened) semantic versions are
// compared with semver, so "6" == "6.0" == "6.0.0". Anything else is
// compared dot field by dot field, a missing field counting as "0", each
// field ordered the way Debian/GNU order version strings.
func Compare(a, b string) int {
	sa, sb := canonical(a), canonical(b)
	if semver.IsValid(sa) && semver.IsValid(sb) {
		return semver.Compare(sa, sb)
	}
	fa := strings.Split(strings.TrimPrefix(a, "v"), ".")
	fb := strings.Split(strings.TrimPrefix(b, "v"), ".")
	for i := 0; i < max(len(fa), len(fb)); i++ {
		x, y := "0", "0"
		if i < len(fa) {
			x = fa[i]
		}
		if i < len(fb) {
			y = fb[i]
		}
		if c := verrevcmp(x, y); c != 0 {
			return sign(c)
		}
	}
	return 0
}

// Less reports whether a orders before b.
func Less(a, b string) bool { return Compare(a, b) < 0 }

// Equal reports whether a and b denote the same version.
func Equal(a, b string) bool { return Compare(a, b) == 0 }

// Valid reports whether s starts with a digit, which every compiler
// version does.
func Valid(s string) bool {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")
	return s != "" && isDigit(s[0])
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

// verrevcmp orders two version fragments by alternating runs of
// non-digits (compared by order) and digits (compared numerically).
func verrevcmp(a, b string) int {
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		for (i < len(a) && !isDigit(a[i])) || (j < len(b) && !isDigit(b[j])) {
			var ac, bc byte
			if i < len(a) {
				ac = a[i]
			}
			if j < len(b) {
				bc = b[j]
			}
			if d := order(ac) - order(bc); d != 0 {
				return d
			}
			i++
			j++
		}
		for i < len(a) && a[i] == '0' {
			i++
		}
		for j < len(b) && b[j] == '0' {
			j++
		}
		diff := 0
		for i < len(a) && j < len(b) && isDigit(a[i]) && isDigit(b[j]) {
			if diff == 0 {
				diff = int(a[i]) - int(b[j])
			}
			i++
			j++
		}
		if i < len(a) && isDigit(a[i]) {
			return 1
		}
		if j < len(b) && isDigit(b[j]) {
			return -1
		}
		if diff != 0 {
			return diff
		}
	}
	return 0
}

// order ranks a byte: '~' sorts before everything, end-of-string and
// digits next, letters by ASCII, other punctuation after letters.
func order(c byte) int {
	switch {
	case c == 0 || isDigit(c):
		return 0
	case c == '~':
		return -1
	case (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		return int(c)
	}
	return int(c) + 256
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
