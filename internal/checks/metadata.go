package checks

import (
	"context"

	"github.com/genomics-tools/datacheck/internal/source"
)

const MetadataSuite = "ensembl_genome_metadata"

func metadataChecks() []Check {
	return []Check{
		{Suite: MetadataSuite, Name: "check_database", Run: checkDatabase},
		{Suite: MetadataSuite, Name: "check_tables", Run: withSource(TablesNotEmpty)},
		{Suite: MetadataSuite, Name: "check_organism_assembly_link", Run: foreignKey("organism", "assembly", "organism_id", "organism_id")},
		{Suite: MetadataSuite, Name: "check_assembly_genome_link", Run: foreignKey("assembly", "genome", "assembly_id", "assembly_id")},
		{Suite: MetadataSuite, Name: "check_genome_production_name", Run: attribute("genome", "genome_id", "production_name")},
		{Suite: MetadataSuite, Name: "check_genome_release_has_ensembl_release", Run: foreignKey("genome_release", "ensembl_release", "release_id", "release_id")},
	}
}

func checkDatabase(ctx context.Context, env *Env, _ Warn) error {
	if env.Source == nil || env.Source.DB() == nil {
		return errNoDatabase
	}

	if err := env.Source.DB().PingContext(ctx); err != nil {
		return errNoDatabase
	}

	return nil
}

func withSource(fn func(context.Context, *source.Source) error) Func {
	return func(ctx context.Context, env *Env, _ Warn) error {
		if env.Source == nil {
			return errNoDatabase
		}

		return fn(ctx, env.Source)
	}
}

func foreignKey(sourceTable, targetTable, sourceKey, targetKey string) Func {
	return withSource(func(ctx context.Context, src *source.Source) error {
		return ForeignKeyLink(ctx, src, sourceTable, targetTable, sourceKey, targetKey)
	})
}

func attribute(table, primaryKey, attr string) Func {
	return withSource(func(ctx context.Context, src *source.Source) error {
		return AttributePresence(ctx, src, table, primaryKey, attr)
	})
}
