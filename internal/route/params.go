package route

import "fmt"

// MissingParamError signals a route bound to a path parameter was reached
// without it. It is raised by panic: a loader that needs the parameter
// must not render anything without it.
type MissingParamError struct {
	Name string
}

func (e *MissingParamError) Error() string {
	return fmt.Sprintf("required path parameter %q is missing", e.Name)
}

// MustParam returns the named path parameter, panicking with
// *MissingParamError when it is absent or empty. Gated handlers turn the
// panic into a 500 response.
func MustParam(req *Request, name string) string {
	v := req.PathValue(name)
	if v == "" {
		panic(&MissingParamError{Name: name})
	}
	return v
}

// Param returns an optional path parameter.
func Param(req *Request, name string) (string, bool) {
	v := req.PathValue(name)
	return v, v != ""
}
