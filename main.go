/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/portfolio-site/portfolio/cmd"

func main() {
	cmd.Execute()
}
