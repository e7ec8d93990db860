package m

//guard:validate v
func A(v V) error { return nil }
