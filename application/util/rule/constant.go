package rule

const (
	CR   byte = '\r'
	LF   byte = '\n'
	SP   byte = ' '
	HTAB byte = '\t'
	VT   byte = 0x0B
	FF   byte = 0x0C
)

var (
	OWS         = []byte{SP, HTAB}
	CRLF        = []byte{CR, LF}
	Whitespaces = []byte{SP, HTAB, LF, VT, FF, CR}
)

// Delimiter sets used when scanning a header block.
const (
	DelimSP        = " "
	DelimCRLF      = "\r\n"
	DelimFieldName = ": "
)
