package main

import "github.com/frahmantamala/hostel-management/cmd"

func main() {
	cmd.Execute()
}
