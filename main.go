package main

import (
	"os"

	"github.com/supabase/pg-toolbelt-sub004/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
