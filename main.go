// SPDX-License-Identifier: MPL-2.0

// stevedore packages Node.js services as container images and runs them.
package main

import cmd "stevedore-cli/cmd/stevedore"

func main() {
	cmd.Execute()
}
