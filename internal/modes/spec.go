package modes

import (
	"strconv"
	"strings"
)

// FormatSpec renders an entry the way the proxy spells modes on its command
// line: type[:data][@[host:]port]. IPv6 listen hosts are bracketed. A listen
// host without a port is not representable and is left out.
func FormatSpec(t Type, e Entry) string {
	var b strings.Builder
	b.WriteString(string(t))

	if data := specData(t, e); data != "" {
		b.WriteByte(':')
		b.WriteString(data)
	}

	host, _ := e.String(FieldListenHost)
	port, hasPort := e.Int(FieldListenPort)
	switch {
	case hasPort && host != "":
		b.WriteByte('@')
		b.WriteString(bracketHost(host))
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(port))
	case hasPort:
		b.WriteByte('@')
		b.WriteString(strconv.Itoa(port))
	}
	return b.String()
}

func specData(t Type, e Entry) string {
	switch t {
	case Local:
		procs, _ := e.String(FieldSelectedProcesses)
		return strings.TrimSpace(procs)
	case WireGuard:
		path, _ := e.String(FieldFilePath)
		return strings.TrimSpace(path)
	case Reverse:
		proto, _ := e.String(FieldProtocol)
		dest, _ := e.String(FieldDestination)
		if dest == "" {
			return ""
		}
		return proto + "://" + dest
	default:
		return ""
	}
}

func bracketHost(host string) string {
	if strings.Contains(host, ":") && !strings.HasPrefix(host, "[") {
		return "[" + host + "]"
	}
	return host
}
