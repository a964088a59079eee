package models

// Estado is a read-only federal state reference row.
type Estado struct {
	ID     int64  `db:"id" json:"id"`
	IBGEID string `db:"id_ibge" json:"id_ibge"`
	Nome   string `db:"nome" json:"nome"`
	UF     string `db:"uf" json:"uf"`
	Regiao string `db:"regiao" json:"regiao"`
	Pais   string `db:"pais" json:"pais"`
}

// Municipio is a read-only municipality reference row.
type Municipio struct {
	ID         int64  `db:"id" json:"id"`
	Nome       string `db:"nome" json:"nome"`
	EstadoID   int64  `db:"estado_id" json:"estado_id"`
	CodigoIBGE string `db:"codigo_ibge" json:"codigo_ibge"`
	Capital    bool   `db:"capital" json:"capital"`
}
