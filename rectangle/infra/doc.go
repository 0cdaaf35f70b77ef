// Package infra contém implementações concretas para os contratos do pacote domain.
//
// Exemplos:
//   - MemoryStore, FileStore, RedisStore: onde o retângulo atual é guardado
//   - ClientLimiters: token bucket por cliente usando golang.org/x/time/rate
//   - UpdateSlots: semáforo para atualizações pendentes
//   - MemoryStatsStore, RedisStatsStore: contadores de resultado das atualizações
package infra
