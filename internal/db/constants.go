package db

// currentMetaVersion marks rows whose cached meta includes cells and reroll.
const currentMetaVersion = 2

// totalReadsKey is the system_meta row counting listed reports.
const totalReadsKey = "total_reads"

// reportColumns is the column list scanned by scanReport.
const reportColumns = `id, raw, created_at, type, memo, COALESCE(battle_date, ''), coins, seconds, cells, reroll`
