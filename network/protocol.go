package network

// Message ids. 1xx are room lifecycle requests, 2xx game actions, 3xx
// server-initiated pushes. Every request is acknowledged with a response
// carrying the same id.
const (
	MsgTypeHeartbeat uint16 = 1

	MsgTypeListRooms   uint16 = 101
	MsgTypeCreateRoom  uint16 = 102
	MsgTypeJoinRoom    uint16 = 103
	MsgTypeLeaveRoom   uint16 = 104
	MsgTypeDisbandRoom uint16 = 105
	MsgTypeReconnect   uint16 = 106

	MsgTypeStartGame   uint16 = 201
	MsgTypeForceFinish uint16 = 202
	MsgTypeSubmitClues uint16 = 203
	MsgTypeSubmitGuess uint16 = 204
	MsgTypeAIClues     uint16 = 205

	MsgTypeRoomsUpdate    uint16 = 301
	MsgTypeStateUpdate    uint16 = 302
	MsgTypeSessionCleared uint16 = 303
)
