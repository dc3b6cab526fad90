// Copyright (C) 2024 Toitware ApS. All rights reserved.
// Use of this source code is governed by an MIT-style license that can be
// found in the LICENSE file.

package console

import "strings"

// Split separates line at its first space. The space belongs to neither
// part; further spaces stay in rest.
func Split(line string) (token, rest string) {
	token, rest, _ = strings.Cut(line, " ")
	return token, rest
}
