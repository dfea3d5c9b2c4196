// Package board is the per-deployment discussion board: plain text messages
// stored in the messages collection and read back in server timestamp order.
//
//   - GET /board/messages : Lists messages, oldest first (?limit= keeps the newest N).
//   - POST /board/messages : Posts {"text": "..."}.
package board
