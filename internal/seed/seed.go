package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/rlopezj/catedra/internal/app/models"
	"github.com/rlopezj/catedra/internal/app/repositories"
)

// defaultCareers is the career catalog offered on the registration
// form, grouped by campus.
var defaultCareers = []models.Career{
	{Name: "Licenciatura en Nutrición", Campus: "Juchitán"},
	{Name: "Licenciatura en Enfermería", Campus: "Juchitán"},

	{Name: "Lic. en Ciencias Empresariales", Campus: "Ixtepec"},
	{Name: "Lic. en Derecho", Campus: "Ixtepec"},
	{Name: "Ing. en Desarrollo de Software y Sistemas Inteligentes", Campus: "Ixtepec"},
	{Name: "Ing. en Logística y Cadenas de suministros", Campus: "Ixtepec"},
	{Name: "Lic. en Comercio Exterior y Gestión de Aduanas", Campus: "Ixtepec"},
	{Name: "Lic. en Administración Pública", Campus: "Ixtepec"},
	{Name: "Lic. en Informática", Campus: "Ixtepec"},

	{Name: "Ingeniería Química", Campus: "Tehuantepec"},
	{Name: "Ingeniería de Petróleos", Campus: "Tehuantepec"},
	{Name: "Ingeniería en Diseño", Campus: "Tehuantepec"},
	{Name: "Ingeniería en Computación", Campus: "Tehuantepec"},
	{Name: "Ingeniería Industrial", Campus: "Tehuantepec"},
	{Name: "Licenciatura en Matemáticas Aplicadas", Campus: "Tehuantepec"},
	{Name: "Ingeniería en Energías Renovables", Campus: "Tehuantepec"},
}

// CreateDefaultData loads the career catalog on first start. An already
// populated careers table is left untouched.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	careerRepo := repositories.NewCareerRepository(dbPool)

	count, err := careerRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("error checking career catalog: %w", err)
	}
	if count > 0 {
		lgr.Debug().Int64("count", count).Msg("Career catalog already seeded")
		return nil
	}

	for _, career := range defaultCareers {
		c := career
		if _, err := careerRepo.Create(ctx, &c); err != nil {
			return fmt.Errorf("error seeding career %q: %w", c.Name, err)
		}
	}

	lgr.Info().Int("count", len(defaultCareers)).Msg("Career catalog seeded")
	return nil
}
