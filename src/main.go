package main

import (
	"fmt"
	"os"

	"sysyc/src/driver"
	"sysyc/src/util"
)

func main() {
	opt, err := util.ParseArgs()
	if err != nil {
		fmt.Printf("Command line argument error: %s\n", err)
		os.Exit(1)
	}

	out, err := driver.Run(opt)
	if err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}

	if err := util.WriteOutput(opt, out); err != nil {
		fmt.Printf("Error: %s\n", err)
		os.Exit(1)
	}
}
