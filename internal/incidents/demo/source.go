// Package demo provides a static incident source with curated security
// incidents, used for offline demos and tests.
package demo

import (
	"context"

	"github.com/bissquit/incident-feed/internal/domain"
)

type entry struct {
	title string
	body  string
}

var catalogue = []entry{
	{
		title: "Unauthorized Access Attempt Detected on Production Server",
		body:  `Multiple failed login attempts detected from IP 192.168.1.105. The attempted username was "admin" with various password combinations. This activity triggered our brute force detection system. The source IP has been geo-located to a suspicious region known for cyber attacks. Our security team has implemented temporary IP blocking and is monitoring for further attempts. Additional investigation is underway to determine if any accounts were compromised.`,
	},
	{
		title: "SQL Injection Pattern Detected in Web Application",
		body:  "Our WAF detected a potential SQL injection attack targeting the user login endpoint. The payload contained typical SQL metacharacters attempting to bypass authentication. The attack originated from multiple IP addresses suggesting a coordinated effort. All attempts were successfully blocked by our security infrastructure.",
	},
	{
		title: "Suspicious Outbound Traffic to Known Malicious IP",
		body:  "Network monitoring detected unusual outbound connections to IP addresses associated with known command and control servers. Investigation is underway to identify the affected systems and potential data exfiltration.",
	},
	{
		title: "Critical Vulnerability Found in Authentication Module",
		body:  "Security scan revealed CVE-2024-1234 in the authentication module. This vulnerability could allow attackers to bypass authentication under specific conditions. Patching is in progress.",
	},
	{
		title: "Malware Signature Detected in Email Attachment",
		body:  "Email gateway detected a malicious attachment in an email sent to the finance department. The file was quarantined and the sender has been blocked.",
	},
	{
		title: "Brute Force Attack on Admin Portal",
		body:  "Over 1000 failed login attempts detected on the admin portal within a 10-minute window. Source IP has been temporarily blocked.",
	},
	{
		title: "Data Exfiltration Attempt Blocked by DLP",
		body:  "Data Loss Prevention system blocked an attempt to transfer sensitive customer data to an external cloud storage service.",
	},
	{
		title: "Privilege Escalation Detected on Database Server",
		body:  "Unusual privilege escalation detected on the primary database server. A service account attempted to gain root access.",
	},
	{
		title: "Cross-Site Scripting (XSS) Vulnerability Reported",
		body:  "Security researcher reported a stored XSS vulnerability in the comment section of the customer portal.",
	},
	{
		title: "Ransomware Activity Detected in Network Segment",
		body:  "Endpoint protection detected ransomware behavior on workstation WS-FIN-003. The machine has been isolated from the network. Forensic analysis is in progress.",
	},
}

// DefaultCount is the number of incidents served by default.
const DefaultCount = 10

// Source serves Count incidents with ids 1..Count. Titles and bodies cycle
// through the curated catalogue.
type Source struct {
	Count int
}

// NewSource creates a demo source with count incidents.
func NewSource(count int) *Source {
	if count <= 0 {
		count = DefaultCount
	}
	return &Source{Count: count}
}

// Fetch implements incidents.Source.
func (s *Source) Fetch(ctx context.Context) ([]domain.RawIncident, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raws := make([]domain.RawIncident, 0, s.Count)
	for id := 1; id <= s.Count; id++ {
		raws = append(raws, Incident(id))
	}
	return raws, nil
}

// Incident returns the curated raw incident for id.
func Incident(id int) domain.RawIncident {
	n := len(catalogue)
	e := catalogue[((id-1)%n+n)%n]
	return domain.RawIncident{
		ID:       id,
		AuthorID: id%5 + 1,
		Title:    e.title,
		Body:     e.body,
	}
}
