package main

import "backoffice/console/cmd/console/cmd"

func main() {
	cmd.Execute()
}
