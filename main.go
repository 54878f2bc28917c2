// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/denvhq/denv/cmd/denv"

func main() {
	cmd.Execute()
}
