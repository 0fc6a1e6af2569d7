// Package domain contains the core entities of the decision-capture
// platform: experiments, scenarios, sessions, scenario responses,
// thematic analyses, and the exported KDMA trace record, along with the
// input and filter types used by the service layer.
package domain
