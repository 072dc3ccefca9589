package core

import (
	"net/url"
	"regexp"
	"strings"
)

const contactDomain = "geotest.com"

// spaceRun also covers Unicode spaces such as NBSP.
var spaceRun = regexp.MustCompile(`[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]+`)

// ContactEmail derives the responsible person's address from their name:
// "Ing. Ana Torres" -> "ana.torres@geotest.com".
func ContactEmail(responsible string) string {
	local := strings.ToLower(responsible)
	local = strings.Replace(local, "ing. ", "", 1)
	local = strings.Replace(local, "arq. ", "", 1)
	local = spaceRun.ReplaceAllString(local, ".")
	return local + "@" + contactDomain
}

// ContactLink returns the mailto link used by the "contactar" action.
func ContactLink(p Project) string {
	q := url.Values{}
	q.Set("subject", "Consulta sobre obra: "+p.Name)
	return "mailto:" + ContactEmail(p.Responsible) + "?" + strings.ReplaceAll(q.Encode(), "+", "%20")
}

// ApprovalMessage is shown once a project's progress is approved.
func ApprovalMessage(p Project) string {
	return `El avance del proyecto "` + p.Name + `" ha sido aprobado.`
}
