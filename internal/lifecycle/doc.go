// Package lifecycle gates faculty deactivation behind dependency resolution.
// A faculty member with open course assignments cannot simply be switched off;
// each assignment has to be finished first, and the gate tracks that work item
// by item. Confirmation also strips the in-charge flag before the status flip,
// so a department is never left nominally in the charge of an inactive member.
package lifecycle
