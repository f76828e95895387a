// Command teakeys extracts column keys from HTML reference pages, cleans
// them, and renames dataset columns with them.
package main

import "teakeys/internal/cli"

func main() {
	cli.Execute()
}
