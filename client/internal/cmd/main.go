package main

import (
	"log"
	"warden/client/pkg/cmd"
)

func main() {
	wardenCmd := cmd.New()
	if err := wardenCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
