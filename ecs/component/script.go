package component

// Script attaches a tengo listener script to a skeleton instance. The script
// is resolved through prefabs.LoadScript.
type Script struct {
	Path string
	// Disabled is set after a script fails to load or run so the error is
	// reported once.
	Disabled bool
}

var ScriptComponent = NewComponent[Script]()
