// Package websocket streams game snapshots to browser and desktop clients.
//
// The package uses a hub-and-spoke model. A central Hub owns all client
// bookkeeping on its Run goroutine; each connection has a read pump and a
// write pump. The hub implements service.SnapshotPublisher, so realtime
// sessions push one snapshot per tick through it. Publishing never blocks the
// game loop: a saturated hub drops the message and a client whose buffer is
// full is disconnected.
//
// Message Protocol:
//
// Clients connect with /ws?session=<id>&format=json|msgpack. JSON clients
// get text frames, msgpack clients binary frames with the same field names:
//   - Outgoing: {"type":"snapshot","session_id":"ab12","snapshot":{...}}
//   - Outgoing: {"type":"event","session_id":"ab12","event":{"type":"game_over",...}}
//   - Incoming: {"type":"input","direction":"up"}
//   - Incoming: {"type":"restart"}
//
// Incoming frames are routed to a Controller, normally the game service.
//
// Usage:
//
//	hub := websocket.NewHub()
//	hub.SetController(gameService)
//	go hub.Run(ctx)
package websocket
