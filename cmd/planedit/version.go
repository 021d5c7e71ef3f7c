package main

import "fmt"

type versionCmd struct{ r *root }

func (v *versionCmd) Run() error {
	out := fmt.Sprintf("%s version %s", v.r.program, version)
	if commit != "" {
		out += " (" + commit
		if date != "" {
			out += ", " + date
		}
		out += ")"
	}
	fmt.Println(out)
	return nil
}
