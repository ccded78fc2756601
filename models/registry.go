package models

// Registry exposes the package-level registry functions as a value so
// callers can depend on an interface instead of the global database.
type Registry struct{}

func (Registry) CreateAsset(a *Asset) error                    { return CreateAsset(a) }
func (Registry) GetAsset(id int64) (*Asset, error)             { return GetAsset(id) }
func (Registry) GetAssetByHash(hash string) (*Asset, error)    { return GetAssetByHash(hash) }
func (Registry) ListAssets() ([]Asset, error)                  { return ListAssets() }
func (Registry) DeleteAsset(id int64) error                    { return DeleteAsset(id) }
func (Registry) SaveVariant(v *Variant) error                  { return SaveVariant(v) }
func (Registry) ListVariants(assetID int64) ([]Variant, error) { return ListVariants(assetID) }

func (Registry) DeleteVariantsForAsset(assetID int64) (int64, error) {
	return DeleteVariantsForAsset(assetID)
}

func (Registry) GetVariant(assetID int64, name string) (*Variant, error) {
	return GetVariant(assetID, name)
}
