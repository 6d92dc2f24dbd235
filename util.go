package bolt

import "fmt"

// sprintByteHex returns a formatted string of the byte array in hexadecimal
func sprintByteHex(b []byte) string {
	output := "\n\n\t"
	for i, b := range b {
		output += fmt.Sprintf("%x ", b)
		if (i+1)%16 == 0 {
			output += "\n\t"
		}
	}
	output += "\n\n"
	return output
}
