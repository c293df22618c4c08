package presence

// Party describes the size of the player's party.
type Party struct {
	CurrentSize int32
	MaxSize     int32
	Privacy     PartyPrivacy
}

func NewParty(currentSize, maxSize int32) *Party {
	return &Party{
		CurrentSize: currentSize,
		MaxSize:     maxSize,
	}
}

func (p *Party) SetPrivacy(privacy PartyPrivacy) *Party {
	p.Privacy = privacy

	return p
}
