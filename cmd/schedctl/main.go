package main

import (
	_ "time/tzdata"

	"clinicsched/internal/cli"
)

func main() {
	cli.Execute()
}
