package dialogue

type promptRole struct {
	Label  string
	Traits []string
}

type promptField struct {
	Name         string
	Description  string
	Must         []string
	Reject       []string
	Casts        []string
	Confidential bool
	Conclude     bool
}
