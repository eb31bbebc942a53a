package config

// FileStore reloads zone configuration and add-on options from disk, giving
// each cycle a fresh read-only view.
type FileStore struct {
	zonesPath   string
	optionsPath string
}

func NewFileStore(zonesPath, optionsPath string) *FileStore {
	return &FileStore{zonesPath: zonesPath, optionsPath: optionsPath}
}

func (s *FileStore) Zones() (*Zones, error) {
	return LoadZones(s.zonesPath)
}

func (s *FileStore) SaveZones(zones *Zones) error {
	return SaveZones(s.zonesPath, zones)
}

func (s *FileStore) Options() (Options, error) {
	return LoadOptions(s.optionsPath)
}
