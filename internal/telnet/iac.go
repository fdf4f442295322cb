package telnet

// Telnet command bytes (RFC 854).
const (
	cmdSE   byte = 240
	cmdSB   byte = 250
	cmdWILL byte = 251
	cmdWONT byte = 252
	cmdDO   byte = 253
	cmdDONT byte = 254
	cmdIAC  byte = 255
)

type iacState int

const (
	stateData iacState = iota
	stateIAC
	stateOption
	stateSub
	stateSubIAC
)

// commandFilter strips telnet commands from the byte stream and collects
// refusals for every option the server asks about. The client never
// negotiates anything.
type commandFilter struct {
	state iacState
	verb  byte
}

// filter returns the data bytes of in and any reply to send back.
func (f *commandFilter) filter(in []byte) (data, reply []byte) {
	data = make([]byte, 0, len(in))
	for _, c := range in {
		switch f.state {
		case stateData:
			if c == cmdIAC {
				f.state = stateIAC
				continue
			}
			data = append(data, c)
		case stateIAC:
			switch c {
			case cmdIAC:
				data = append(data, c)
				f.state = stateData
			case cmdWILL, cmdWONT, cmdDO, cmdDONT:
				f.verb = c
				f.state = stateOption
			case cmdSB:
				f.state = stateSub
			default:
				f.state = stateData
			}
		case stateOption:
			switch f.verb {
			case cmdDO:
				reply = append(reply, cmdIAC, cmdWONT, c)
			case cmdWILL:
				reply = append(reply, cmdIAC, cmdDONT, c)
			}
			f.state = stateData
		case stateSub:
			if c == cmdIAC {
				f.state = stateSubIAC
			}
		case stateSubIAC:
			if c == cmdSE {
				f.state = stateData
			} else {
				f.state = stateSub
			}
		}
	}
	return data, reply
}
