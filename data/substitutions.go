package data

import "strings"

type substitutionSet map[string]string

// replaceVariables replaces every ${name} whose name is in substs. Unknown names are left alone
// so that a later pass can fill them in.
func replaceVariables(originalData []byte, substs map[string]string) []byte {
	if len(substs) == 0 {
		return originalData
	}
	str := string(originalData)
	for name, value := range substs {
		str = strings.ReplaceAll(str, "${"+name+"}", value)
	}
	return []byte(str)
}

// Unresolved returns the names of any ${name} placeholders still present in data.
func Unresolved(data []byte) []string {
	var ret []string
	s := string(data)
	for {
		start := strings.Index(s, "${")
		if start < 0 {
			return ret
		}
		end := strings.Index(s[start:], "}")
		if end < 0 {
			return ret
		}
		ret = append(ret, s[start+2:start+end])
		s = s[start+end+1:]
	}
}
