package ipc

const (
	TypeHello       = "hello"
	TypeAck         = "ack"
	TypeObservation = "observation"
	TypeCommand     = "command"
)

// HelloMessage opens a session and tells the agent the map geometry.
type HelloMessage struct {
	Player     string `json:"player"`
	MapSize    int    `json:"mapSize,omitempty"`
	ScreenSize int    `json:"screenSize,omitempty"`
}

type AckMessage struct {
	Status  string `json:"status"`
	Actions int    `json:"actions,omitempty"` // catalog size, for the environment's logs
}
