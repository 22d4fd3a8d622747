package main

import (
	_ "time/tzdata"

	"github.com/meinhoongagan/clinic-app/cmd"
)

func main() {
	cmd.Execute()
}
