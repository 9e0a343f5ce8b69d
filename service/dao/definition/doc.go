// Package definition loads process definitions from YAML documents stored
// on any afs supported location (file://, mem://, embed://, s3:// ...).
//
// Activities can be listed as a sequence or, more compactly, as a mapping
// keyed by activity key:
//
//	key: purchase-order
//	name: Purchase order
//	activities:
//	  apply:
//	    assignee: ${initiator}
//	    next: approve
//	  approve:
//	    candidateGroups: manager
package definition
