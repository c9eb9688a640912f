// Package report turns a resolution result into the artifacts debgems
// writes: the ordered JSON status file, the parent/child edge list, a
// Graphviz DOT graph (optionally rendered to SVG or PDF), an HTML status
// page and a terminal table.
//
// File names follow the gemdeps convention: [StatusFile] returns
// "<app>_debian_status.json" and [GraphFile] returns "<app>.dot".
//
// # Colors
//
// Every record carries a [deps.Color]. The same color is used as the DOT
// node color, the HTML row class and the terminal table foreground:
//
//	green   packaged in unstable and satisfied
//	yellow  packaged in experimental and satisfied
//	blue    waiting in the NEW queue and satisfied
//	cyan    ITP or RFP bug filed
//	red     not packaged
//	violet  packaged but the version does not satisfy the requirement
package report
