// SPDX-License-Identifier: MPL-2.0

// bgsetup bootstraps and launches the background-removal utility:
// it ensures a suitable Python interpreter is installed, installs the
// application's pip packages, optionally pre-fetches the AI models,
// and starts the application script.
package main

import cmd "bgsetup-cli/cmd/bgsetup"

func main() {
	cmd.Execute()
}
