package client

// Recorder abstracts the audio capture device. Start acquires it exclusively
// and may fail (permission denied, device busy). Stop must always release the
// device, on every exit path, and returns whatever audio was buffered.
type Recorder interface {
	Start() error
	Stop() ([]byte, error)
}
