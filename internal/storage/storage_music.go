package storage

// SetVolume remembers the queue volume of a guild.
func (s *Storage) SetVolume(guildID string, volume int) error {
	return s.update(guildID, func(r *Record) {
		r.Volume = &volume
	})
}

// Volume returns the remembered queue volume of a guild, if any.
func (s *Storage) Volume(guildID string) (int, bool) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil || record.Volume == nil {
		return 0, false
	}
	return *record.Volume, true
}
