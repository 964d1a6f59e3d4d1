package main

import (
	"github.com/ryuu1kyou/SimulinkWiringOptimization/internal/cli"
)

func main() {
	cli.Execute()
}
