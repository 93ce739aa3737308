// Package protocol defines the frames exchanged between a hosted element
// and a remote client, and the codecs that put them on the wire.
//
// Server to client:
//
//	hello    {session, tag, html}    sent once when a session opens
//	patches  {seq, patches[]}        result of one reconciliation
//	event    {event}                 event dispatched on the host element
//	error    {error}                 a request failed
//
// Client to server:
//
//	event     {event: {type, hid, detail}}
//	attribute {attribute: {name, value?}}   nil value removes the attribute
//	assign    {props}
//
// The JSON codec produces text messages; the CBOR codec produces compact
// binary messages with integer keys.
package protocol
