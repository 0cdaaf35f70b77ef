// Package domain define os tipos e contratos do retângulo compartilhado.
//
// Este pacote não depende de net/http nem de implementações concretas de
// armazenamento. Store, StatsStore, LimiterStore e UpdateSlots são implementados
// no pacote infra; as regras de negócio ficam no pacote application.
package domain
