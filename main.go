/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/Swevix/WebRGZ/cmd"

func main() {
	cmd.Execute()
}
