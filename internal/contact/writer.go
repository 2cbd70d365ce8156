package contact

import "strings"

// Marshal serializes a set back into the tabular wire format the remote
// service expects: a fixed header plus one quote-wrapped row per contact,
// internal quotes doubled. Parse(Marshal(set)) yields an equal set.
func Marshal(set Set) string {
	var b strings.Builder
	b.WriteString("name,email,company\n")
	for _, c := range set {
		b.WriteString(quote(c.Name))
		b.WriteByte(',')
		b.WriteString(quote(c.Email))
		b.WriteByte(',')
		b.WriteString(quote(c.Company))
		b.WriteByte('\n')
	}
	return b.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Sample returns example contact data in the accepted format, used by the
// CLI and documentation.
func Sample() string {
	return `name,email,company
Sarah Johnson,sarah.johnson@techcorp.com,TechCorp Solutions
John Smith,john.smith@innovatesoft.com,InnovateSoft Inc
Priya Patel,priya.patel@startuptech.com,StartupTech Solutions
Mike Chen,mike.chen@digitalworks.com,Digital Works Ltd
Lisa Rodriguez,lisa.rodriguez@futuretech.com,FutureTech Industries
`
}
